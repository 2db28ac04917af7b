package chartedit

// ChartMetadata is a flat snapshot of the descriptive fields of a chart,
// used to create a chart or to edit the metadata of an existing one.
// ChartFolderPath is the directory the chart and its media live in.
type ChartMetadata struct {
	Artist         string
	SongTitle      string
	Charter        string
	DifficultyName string
	Source         string
	Tags           string

	ChartFolderPath string
	AudioPath       string
	BackgroundPath  string

	KeyAmount int
	OD        float64
	HP        float64
}
