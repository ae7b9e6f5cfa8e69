package export

// Store defines the text snapshot operations used by the export observer
type Store interface {
	// WriteTable fully replaces name with a header line followed by one line per row
	WriteTable(name string, header []string, rows [][]string) error

	// AppendLine appends a single record to name, creating it if needed
	AppendLine(name string, fields []string) error

	// Path returns the filesystem location of name
	Path(name string) string
}
