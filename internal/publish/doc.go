// Package publish sequences one publishing run: for every variant of a
// project it fetches the artifact, resolves the compatible game versions and
// submits the file to each configured platform, pausing after every upload.
package publish
