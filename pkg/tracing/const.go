package tracing

// Span attribute keys used by zcsv
const (
	AttrKeyZcsvErrorCode   = "zcsv.error.code"
	AttrKeyZcsvCommand     = "zcsv.command"
	AttrKeyZcsvArchivePath = "zcsv.archive.path"
	AttrKeyZcsvTableName   = "zcsv.table.name"
	AttrKeyZcsvTableCount  = "zcsv.table.count"
	AttrKeyZcsvMirrorKey   = "zcsv.mirror.key"
)
