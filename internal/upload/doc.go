// Package upload drives a single image upload session through its advisory
// progress stages and reports the classified item or the stage that failed.
package upload
