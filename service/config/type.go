package config

const (
	FaceDetectorName = "face"
	EyeDetectorName  = "eye"
)

const (
	DataStoreFiles  = "files"
	DataStoreSqlite = "sqlite"
)

type CameraParameters struct {
	Device  int    // Device index, used when Source is empty
	Source  string // Optional video file or stream URL
	Backend string // auto, any, dshow, msmf, v4l2, avfoundation, ffmpeg, gstreamer
	Width   int
	Height  int
	// ReadRetries is the number of extra read attempts after a failed read
	// before the stream is considered ended. Zero keeps the first failure fatal
	// to the loop.
	ReadRetries      int
	ReadRetryBackoff int // Milliseconds, multiplied by the attempt number
}

type DetectorParameters struct {
	Model        string // Path or built-in cascade name
	ScaleFactor  float64
	MinNeighbors int
	MinSize      int // Pixels, square
}

type AlerterParameters struct {
	CoolDownPeriod int  // Seconds between two alert notifications
	Snapshots      bool // Write a JPEG of the alerting frame
	Bell           bool
	EventsLog      string
	WebhookURL     string
	WebhookTimeout int // Seconds
}

type IService interface {
	GetModeMaxShutdownTime() int
	GetInputFolder() string
	GetRecordingsFolder() string
	GetCascadesFolder() string
	GetCameraParameters() CameraParameters
	GetDetectorParameters(name string) DetectorParameters
	GetAlarmThreshold() int
	GetAlerterParameters() AlerterParameters
	GetWindowName() string
	GetQuitKey() int
	GetKeyPollDelay() int
	GetDataStore() string
	GetSqlitePath() string
}
