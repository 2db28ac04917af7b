package chartio

import (
	"fmt"
	"path/filepath"

	"github.com/bogem/id3v2/v2"

	"github.com/rhythmkit/chartedit"
)

// MetadataFromAudioTags prefills chart metadata from the ID3 tags of an audio
// file. The chart folder defaults to the folder of the audio file. A file
// without tags yields metadata with only the paths set.
func MetadataFromAudioTags(audioPath string) (chartedit.ChartMetadata, error) {
	md := chartedit.ChartMetadata{
		AudioPath:       audioPath,
		ChartFolderPath: filepath.Dir(audioPath),
	}
	tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true})
	if err != nil {
		return md, fmt.Errorf("could not read tags of %v: %w", audioPath, err)
	}
	defer tag.Close()
	md.Artist = tag.Artist()
	md.SongTitle = tag.Title()
	return md, nil
}
