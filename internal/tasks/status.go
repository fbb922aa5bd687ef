package tasks

import "fmt"

// Status is the ordered phase a running job occupies. The numeric order is the
// sequence order: a job never moves to a status lower than one it reported.
type Status int

const (
	StatusPreparingTransition Status = iota
	StatusDownloading
	StatusUnpacking
	StatusFinishingTransition
	StatusApplyingHdiffPatches
	StatusDeletingObsoleteFiles
	StatusCreatingPrefix
	StatusInstallingFonts
	StatusFinished
)

var statusNames = [...]string{
	StatusPreparingTransition:   "preparing_transition",
	StatusDownloading:           "downloading",
	StatusUnpacking:             "unpacking",
	StatusFinishingTransition:   "finishing_transition",
	StatusApplyingHdiffPatches:  "applying_hdiff_patches",
	StatusDeletingObsoleteFiles: "deleting_obsolete_files",
	StatusCreatingPrefix:        "creating_prefix",
	StatusInstallingFonts:       "installing_fonts",
	StatusFinished:              "finished",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// IsTerminal reports whether s ends a job.
func (s Status) IsTerminal() bool { return s == StatusFinished }

// Before reports whether s comes strictly earlier in the sequence than other.
func (s Status) Before(other Status) bool { return s < other }

// MarshalText renders the snake_case name so JSON payloads stay readable.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
