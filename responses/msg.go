package responses

type Message struct {
	Type    string `json:"type"` // "error", etc
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"` // application-level logic code
}

// Application-level logic codes
const (
	CodeValidation = 1001
	CodeThrottled  = 1002
	CodeNotFound   = 1004
	CodeConflict   = 1009
	CodeDelivery   = 1500
)
