package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bnta-demo/microservices/tasks-service/domain"

	"github.com/charmbracelet/log"
)

func writeErrorResp(err error, w http.ResponseWriter, logger *log.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	if errors.Is(err, domain.ErrInvalidTaskId()) {
		status = http.StatusBadRequest
		msg = err.Error()
	} else {
		// store details stay in the log
		logger.Error("request failed", "err", err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, writeErr := w.Write([]byte(msg)); writeErr != nil {
		logger.Error("error writing response", "err", writeErr)
	}
}

func writeResp(resp any, status int, w http.ResponseWriter, logger *log.Logger) {
	respBytes, err := json.Marshal(resp)
	if err != nil {
		logger.Error("unable to convert to json", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(respBytes)
}

func readReq(req any, r *http.Request, w http.ResponseWriter) error {
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid request body: " + err.Error()))
	}
	return err
}
