package bits

import "strings"

// BG_JOB_TYPE values.
var jobTypes = map[uint32]string{
	0: "DOWNLOAD",
	1: "UPLOAD",
	2: "UPLOAD_REPLY",
}

// BG_JOB_STATE values.
var jobStates = map[uint32]string{
	0: "QUEUED",
	1: "CONNECTING",
	2: "TRANSFERRING",
	3: "SUSPENDED",
	4: "ERROR",
	5: "TRANSIENT_ERROR",
	6: "TRANSFERRED",
	7: "ACKNOWLEDGED",
	8: "CANCELLED",
}

// BG_JOB_PRIORITY values.
var jobPriorities = map[uint32]string{
	0: "FOREGROUND",
	1: "HIGH",
	2: "NORMAL",
	3: "LOW",
}

// BG_NOTIFY flag bits.
var notifyFlags = []struct {
	bit  uint32
	name string
}{
	{0x001, "JOB_TRANSFERRED"},
	{0x002, "JOB_ERROR"},
	{0x004, "DISABLE"},
	{0x008, "JOB_MODIFICATION"},
	{0x010, "FILE_TRANSFERRED"},
	{0x020, "FILE_RANGES_TRANSFERRED"},
}

func jobTypeName(v uint32) string {
	if name, ok := jobTypes[v]; ok {
		return name
	}
	return "UNKNOWN"
}

func jobStateName(v uint32) string {
	if name, ok := jobStates[v]; ok {
		return name
	}
	return "UNKNOWN"
}

func priorityName(v uint32) string {
	if name, ok := jobPriorities[v]; ok {
		return name
	}
	return "UNKNOWN"
}

func flagNames(v uint32) string {
	names := []string{}
	for _, f := range notifyFlags {
		if v&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}
