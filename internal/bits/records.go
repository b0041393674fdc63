// Package bits decodes Windows download-job (BITS) databases: the structured
// ESE generation (Win10+), the legacy flat-file generation, and best-effort
// carving of deleted records from the raw bytes of either.
package bits

// JobRecord is one decoded download job. Identity is the job GUID, unique
// within one decode pass; carved results may repeat it.
type JobRecord struct {
	JobID               string   `json:"job_id"`
	FileID              string   `json:"file_id"`
	OwnerSID            string   `json:"owner_sid"`
	Created             int64    `json:"created"`
	Modified            int64    `json:"modified"`
	Completed           int64    `json:"completed"`
	Expiration          int64    `json:"expiration"`
	JobName             string   `json:"job_name"`
	JobDescription      string   `json:"job_description"`
	JobCommand          string   `json:"job_command"`
	JobArguments        string   `json:"job_arguments"`
	ErrorCount          uint32   `json:"error_count"`
	JobType             string   `json:"job_type"`
	JobState            string   `json:"job_state"`
	Priority            string   `json:"priority"`
	Flags               string   `json:"flags"`
	HTTPMethod          string   `json:"http_method"`
	TargetPath          string   `json:"target_path"`
	Timeout             uint32   `json:"timeout"`
	RetryDelay          uint32   `json:"retry_delay"`
	TransientErrorCount uint32   `json:"transient_error_count"`
	ACLs                []string `json:"acls"`
	AdditionalSIDs      []string `json:"additional_sids"`
}

// FileRecord is one decoded transfer target. FileID is the foreign key a
// JobRecord points at; records hold only the value, never each other.
type FileRecord struct {
	FileID            string `json:"file_id"`
	FilesTransferred  uint32 `json:"files_transferred"`
	DownloadBytesSize uint64 `json:"download_bytes_size"`
	TransferBytesSize uint64 `json:"transfer_bytes_size"`
	FullPath          string `json:"full_path"`
	Filename          string `json:"filename"`
	TmpFullPath       string `json:"tmp_fullpath"`
	Volume            string `json:"volume"`
	URL               string `json:"url"`
}

// Entry is the caller-facing artifact record: one job joined with the file
// sharing its file GUID, plus the resolved username and a provenance flag.
type Entry struct {
	JobID               string   `json:"job_id"`
	FileID              string   `json:"file_id"`
	OwnerSID            string   `json:"owner_sid"`
	Username            string   `json:"username"`
	Created             int64    `json:"created"`
	Modified            int64    `json:"modified"`
	Completed           int64    `json:"completed"`
	Expiration          int64    `json:"expiration"`
	FilesTotal          uint32   `json:"files_total"`
	BytesDownloaded     uint64   `json:"bytes_downloaded"`
	BytesTransferred    uint64   `json:"bytes_transferred"`
	JobName             string   `json:"job_name"`
	JobDescription      string   `json:"job_description"`
	JobCommand          string   `json:"job_command"`
	JobArguments        string   `json:"job_arguments"`
	ErrorCount          uint32   `json:"error_count"`
	JobType             string   `json:"job_type"`
	JobState            string   `json:"job_state"`
	Priority            string   `json:"priority"`
	Flags               string   `json:"flags"`
	HTTPMethod          string   `json:"http_method"`
	FullPath            string   `json:"full_path"`
	Filename            string   `json:"filename"`
	TargetPath          string   `json:"target_path"`
	TmpFile             string   `json:"tmp_file"`
	Volume              string   `json:"volume"`
	URL                 string   `json:"url"`
	Timeout             uint32   `json:"timeout"`
	RetryDelay          uint32   `json:"retry_delay"`
	TransientErrorCount uint32   `json:"transient_error_count"`
	ACLs                []string `json:"acls"`
	AdditionalSIDs      []string `json:"additional_sids"`
	Carved              bool     `json:"carved"`
}

// Collection is the result of one decode invocation. Carved jobs and files
// are surfaced separately because the relational key linking them cannot be
// trusted once the authoritative index is gone.
type Collection struct {
	Entries     []Entry      `json:"bits"`
	CarvedJobs  []JobRecord  `json:"carved_jobs"`
	CarvedFiles []FileRecord `json:"carved_files"`
}

// NewCollection returns an empty collection ready to be appended to.
func NewCollection() *Collection {
	return &Collection{
		Entries:     []Entry{},
		CarvedJobs:  []JobRecord{},
		CarvedFiles: []FileRecord{},
	}
}

// mergeEntry builds the caller-facing record from a matched job/file pair.
func mergeEntry(job JobRecord, file FileRecord, username string, carved bool) Entry {
	return Entry{
		JobID:               job.JobID,
		FileID:              job.FileID,
		OwnerSID:            job.OwnerSID,
		Username:            username,
		Created:             job.Created,
		Modified:            job.Modified,
		Completed:           job.Completed,
		Expiration:          job.Expiration,
		FilesTotal:          file.FilesTransferred,
		BytesDownloaded:     file.DownloadBytesSize,
		BytesTransferred:    file.TransferBytesSize,
		JobName:             job.JobName,
		JobDescription:      job.JobDescription,
		JobCommand:          job.JobCommand,
		JobArguments:        job.JobArguments,
		ErrorCount:          job.ErrorCount,
		JobType:             job.JobType,
		JobState:            job.JobState,
		Priority:            job.Priority,
		Flags:               job.Flags,
		HTTPMethod:          job.HTTPMethod,
		FullPath:            file.FullPath,
		Filename:            file.Filename,
		TargetPath:          job.TargetPath,
		TmpFile:             file.TmpFullPath,
		Volume:              file.Volume,
		URL:                 file.URL,
		Timeout:             job.Timeout,
		RetryDelay:          job.RetryDelay,
		TransientErrorCount: job.TransientErrorCount,
		ACLs:                job.ACLs,
		AdditionalSIDs:      job.AdditionalSIDs,
		Carved:              carved,
	}
}
