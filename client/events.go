package client

import "encoding/json"

// Progress events are emitted to the injected callback as JSON strings
// for the frontend. The callback must be safe to invoke from the
// listener goroutine.

type pauseEvent struct {
	Event    string `json:"event"`
	IsPaused string `json:"is_paused"`
}

type drawingEvent struct {
	Event         string `json:"event"`
	InsPos        string `json:"ins_pos"`
	SecsRemaining uint64 `json:"secs_remaining"`
}

type simpleEvent struct {
	Event string `json:"event"`
}

func emitEvent(emit func(string), v any) {
	if emit == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	emit(string(data))
}
