package web

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func Respond(w http.ResponseWriter, code int, data interface{}) {
	if code == http.StatusNoContent || data == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}

	b, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, errors.Wrap(err, "marshal response").Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(b); err != nil {
		log.WithError(errors.Wrap(err, "write response body")).Warn("response not delivered")
	}
}

// RespondError writes {"error": msg}. Server errors other than 501 and 503 are
// logged with their message and answered with the bare status text.
func RespondError(w http.ResponseWriter, code int, msg string) {
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable && code != http.StatusNotImplemented {
		log.WithFields(log.Fields{
			"status": code,
			"error":  msg,
		}).Error("error while serving request")

		code = http.StatusInternalServerError
		msg = http.StatusText(http.StatusInternalServerError)
	}

	Respond(w, code, ErrorResponse{Error: msg})
}
