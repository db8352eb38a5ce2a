package ingest

// defaultConverterPath returns the bare CloudCompare executable name, left
// for exec to resolve through PATH, on every OS. This repo never ships that
// binary; the name is used when Converter.ExecPath is empty.
func defaultConverterPath() string {
	return "CloudCompare"
}
