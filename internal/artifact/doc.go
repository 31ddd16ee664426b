// Package artifact retrieves the latest build of a project for a loader. It
// reads the project's metadata endpoint to find the download URL and version,
// streams the file into the download directory and reports what it wrote.
package artifact
