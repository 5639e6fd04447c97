package capability

import (
	"log/slog"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifTags are the EXIF tags copied into record metadata. They describe the
// capture (device and time), not the decoded content.
var exifTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"Software":         true,
	"DateTimeOriginal": true,
}

// imageMetadata returns the selected EXIF tags of an image, keyed as
// "exif.<TagName>". Images without EXIF yield an empty map.
func imageMetadata(path string, logger *slog.Logger) map[string]string {
	meta := make(map[string]string)

	data, err := os.ReadFile(path) //nolint:gosec // path is the image the user asked to scan
	if err != nil {
		logger.Debug("cannot read image for EXIF", "path", path, "error", err)
		return meta
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return meta
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		logger.Debug("cannot parse EXIF", "path", path, "error", err)
		return meta
	}

	for _, entry := range entries {
		if exifTags[entry.TagName] {
			meta["exif."+entry.TagName] = entry.Formatted
		}
	}
	return meta
}
