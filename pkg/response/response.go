package response

import "supplyStore/pkg/pagination"

// Envelope is the JSON body shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Paginated(message string, data any, meta pagination.Metadata) Envelope {
	return Envelope{Success: true, Message: message, Data: data, Meta: meta}
}

func Error(code, message string, errors any) Envelope {
	return Envelope{Success: false, Code: code, Message: message, Errors: errors}
}
