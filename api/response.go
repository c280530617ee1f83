package api

import (
	"encoding/json"
	"net/http"
)

// Messages returned in the "message" member of error envelopes.
const (
	MsgNoDocument       = "No document uploaded"
	MsgInvalidFileType  = "Invalid file type. Please upload a PDF or Word document."
	MsgExtractFailed    = "Failed to extract text from document"
	MsgInternalError    = "Internal server error"
	MsgNotFound         = "Extraction not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgShuttingDown     = "Service is shutting down"
)

// envelope is the JSON body of every API response.
type envelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
	Metadata any    `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already written; an encode failure cannot change the status.
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data, metadata any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Metadata: metadata})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}
