package excel

// SourceConfig locates the control and test groups. Both groups usually
// live in one workbook on separate sheets; with CSV input each group is its
// own file and the sheet names only label the tables.
type SourceConfig struct {
	ControlFile  string `json:"control_file"`
	ControlSheet string `json:"control_sheet"`
	TestFile     string `json:"test_file"`
	TestSheet    string `json:"test_sheet"`
}

// DefaultSourceConfig returns the sheet layout of the bidding campaign workbook
func DefaultSourceConfig(workbook string) SourceConfig {
	return SourceConfig{
		ControlFile:  workbook,
		ControlSheet: "Control Group",
		TestFile:     workbook,
		TestSheet:    "Test Group",
	}
}
