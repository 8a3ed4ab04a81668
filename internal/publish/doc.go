// Package publish builds project documentation on CI and publishes it to a
// gh-pages style branch.
//
// A run is guarded by the CI environment: only the configured branch, and
// never a pull request build, publishes. The build command is opaque; its
// output directory is imported as a single commit on the target branch,
// which is then force-pushed to the hosting service.
package publish
