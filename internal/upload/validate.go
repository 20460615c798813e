package upload

import "fmt"

// Result of validating one file. Errors are ordered type, extension, size.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks f against preset without touching the file content.
func Validate(f File, preset Preset) Result {
	var errs []string

	if !preset.allowsType(f.ContentType) {
		errs = append(errs, fmt.Sprintf("disallowed type %q", f.ContentType))
	}
	if ext := f.Extension(); !preset.allowsExtension(ext) {
		if ext == "" {
			errs = append(errs, "missing file extension")
		} else {
			errs = append(errs, fmt.Sprintf("disallowed extension %q", ext))
		}
	}
	if f.Size > preset.MaxBytes {
		errs = append(errs, fmt.Sprintf("file size (%s) exceeds %s limit",
			FormatSize(f.Size), FormatSize(preset.MaxBytes)))
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateAll validates every file, keyed by filename.
func ValidateAll(files []File, preset Preset) map[string]Result {
	out := make(map[string]Result, len(files))
	for _, f := range files {
		out[f.Name] = Validate(f, preset)
	}
	return out
}
