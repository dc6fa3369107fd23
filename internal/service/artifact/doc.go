// Package artifact locates and collects the bundler's installer outputs.
//
// The Resolver tries an ordered list of strategies, each looking for a complete
// archive plus detached signature pair for one installer family. The default
// order prefers the Windows Installer family in the given directory and falls
// back to the NSIS family in the sibling directory when the given directory is
// the MSI one. The Collector copies installers into a flat release directory.
package artifact
