package handlers

// RecordAttemptRequest is the request for recording an attempt against a key.
type RecordAttemptRequest struct {
	Key  string `doc:"Caller-chosen limiter key" example:"login:alice" maxLength:"200" minLength:"1" path:"key"`
	Body struct {
		CountLimit int64 `doc:"Maximum attempts per window" example:"5"  json:"countLimit" minimum:"0"`
		TimeLimit  int64 `doc:"Window length in seconds"    example:"60" json:"timeLimit"`
	}
}

// RecordAttemptResponse reports whether the attempt was permitted.
type RecordAttemptResponse struct {
	Body struct {
		Key       string `doc:"The limiter key"                     example:"login:alice" json:"key"`
		Allowed   bool   `doc:"Whether the attempt was permitted"   example:"true"        json:"allowed"`
		Remaining int64  `doc:"Attempts left in the current window" example:"4"           json:"remaining"`
	}
}

// RemainingRequest is the request for reading the remaining attempts of a key.
type RemainingRequest struct {
	Key        string `doc:"Caller-chosen limiter key"   example:"login:alice" maxLength:"200" minLength:"1"      path:"key"`
	CountLimit int64  `doc:"Maximum attempts per window" example:"5"           minimum:"0"   query:"countLimit" required:"true"`
	TimeLimit  int64  `doc:"Window length in seconds"    example:"60"          query:"timeLimit" required:"true"`
}

// RemainingResponse reports the attempts left for a key. The value may be negative.
type RemainingResponse struct {
	Body struct {
		Key       string `doc:"The limiter key"                     example:"login:alice" json:"key"`
		Remaining int64  `doc:"Attempts left in the current window" example:"4"           json:"remaining"`
	}
}
