package release

import "strings"

// Family describes one installer packaging format produced by the bundler.
type Family struct {
	// Name tags the family in logs and results, e.g. "msi".
	Name string
	// Dir is the bundle subdirectory the bundler writes this family into.
	Dir string
	// ArchiveSuffix identifies the updater archive, e.g. ".msi.zip".
	ArchiveSuffix string
	// InstallerSuffix identifies the installer copied into the release directory.
	InstallerSuffix string
}

// SignatureSuffix is appended to an archive name to locate its detached signature.
const SignatureSuffix = ".sig"

//nolint:gochecknoglobals // Families are fixed by the bundler.
var (
	// MSI is the Windows Installer package family; it is preferred when both exist.
	MSI = Family{Name: "msi", Dir: "msi", ArchiveSuffix: ".msi.zip", InstallerSuffix: ".msi"}
	// NSIS is the self-extracting installer family.
	NSIS = Family{Name: "nsis", Dir: "nsis", ArchiveSuffix: ".nsis.zip", InstallerSuffix: ".exe"}
)

// Collects reports whether a bundle file belongs in the release directory:
// the installer, the updater archive or the archive signature.
func (f Family) Collects(name string) bool {
	for _, suffix := range []string{f.InstallerSuffix, f.ArchiveSuffix, f.ArchiveSuffix + SignatureSuffix} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

// Families lists the supported families in priority order.
func Families() []Family {
	return []Family{MSI, NSIS}
}

// Artifact is a resolved archive with its detached signature.
type Artifact struct {
	// Family is the installer family the pair belongs to.
	Family Family
	// Dir is the directory both files were found in.
	Dir string
	// ArchiveName is the archive filename without directory.
	ArchiveName string
	// Signature is the exact text of the signature file.
	Signature string
}
