package composer

// State is a step of the composition pipeline.
type State int

const (
	Idle State = iota
	SegmentsReady
	BaseMuxed
	TitleApplied
	CaptionsApplied
	ThumbnailExtracted
	Done
	Failed
)

var stateNames = map[State]string{
	Idle:               "Idle",
	SegmentsReady:      "SegmentsReady",
	BaseMuxed:          "BaseMuxed",
	TitleApplied:       "TitleApplied",
	CaptionsApplied:    "CaptionsApplied",
	ThumbnailExtracted: "ThumbnailExtracted",
	Done:               "Done",
	Failed:             "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// progressPrepared is reported once the run's temp directory exists.
const progressPrepared = 10

// progress is the percentage reported on entering each state.
var progress = map[State]int{
	Idle:               0,
	SegmentsReady:      40,
	BaseMuxed:          55,
	TitleApplied:       65,
	CaptionsApplied:    85,
	ThumbnailExtracted: 95,
	Done:               100,
}
