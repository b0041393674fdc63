// Package tableengine wraps the go-ese parser behind the narrow contract the
// decoders need: give me these named tables from this database file as rows
// of named cell values.
package tableengine

import (
	"os"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/go-ese/parser"
)

// ExtractTables opens an ESE database and dumps the named tables. Tables the
// catalog does not contain are simply absent from the returned map; callers
// requiring a table raise their own missing-table condition so the error
// carries their context.
func ExtractTables(path string, tables []string) (map[string][]*ordereddict.Dict, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open ESE database %s", path)
	}
	defer fd.Close()

	eseCtx, err := parser.NewESEContext(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "parse ESE database %s", path)
	}
	catalog, err := parser.ReadCatalog(eseCtx)
	if err != nil {
		return nil, errors.Wrapf(err, "read ESE catalog of %s", path)
	}

	out := make(map[string][]*ordereddict.Dict, len(tables))
	for _, name := range tables {
		rows := []*ordereddict.Dict{}
		err := catalog.DumpTable(name, func(row *ordereddict.Dict) error {
			rows = append(rows, row)
			return nil
		})
		if err != nil {
			// Absent table; leave the key out of the result.
			continue
		}
		out[name] = rows
	}
	return out, nil
}
