package output

import "domainlog/internal/severity"

// Void は何も出力しない Output
type Void struct{}

var (
	_ Output          = Void{}
	_ ErrorWriter     = Void{}
	_ ErrorOnlyWriter = Void{}
)

func (Void) Write(severity.Severity, string, string) {}

func (Void) WriteError(severity.Severity, string, string, error) {}

func (Void) WriteErrorOnly(severity.Severity, string, error) {}
