package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/cafeledger/backend/src/logger"
)

// PayloadFingerprint hashes an analyze payload (CSV text plus fixed costs)
// into a cache key. Byte-identical payloads always map to the same key.
func PayloadFingerprint(csvText string, fixedCosts float64) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%.4f", csvText, fixedCosts)))
	return hex.EncodeToString(hash[:])
}

// SendJSONError is a helper function to send JSON formatted error responses.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if logger.L != nil { // Check if logger is initialized
		logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	}
	// Even if logger isn't ready, still try to send the error response
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
