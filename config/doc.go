// Package config loads the glyphcast host configuration: font directories,
// watch timing, logging and output paths. Style sheets are configured
// separately through the dsl and layout packages.
package config
