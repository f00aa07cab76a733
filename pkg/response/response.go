// Package response writes the storefront's JSON envelope.
//
// Every body carries a boolean success flag; failures additionally carry
// a message the frontend shows verbatim. Payload fields ride alongside:
//
//	{"success":true,"product":{...}}
//	{"success":false,"message":"Insufficient stock for Silk Saree (size M): 1 available"}
package response

import (
	"encoding/json"
	"net/http"
)

// Payload is the set of extra top-level fields merged into the envelope.
type Payload map[string]interface{}

func write(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 with success:true and the payload fields inlined.
func OK(w http.ResponseWriter, p Payload) {
	JSON(w, http.StatusOK, p)
}

// Created sends a 201 with success:true and the payload fields inlined.
func Created(w http.ResponseWriter, p Payload) {
	JSON(w, http.StatusCreated, p)
}

// JSON sends an arbitrary success envelope.
func JSON(w http.ResponseWriter, status int, p Payload) {
	body := map[string]interface{}{"success": true}
	for k, v := range p {
		body[k] = v
	}
	write(w, status, body)
}

// Fail sends {"success":false,"message":...} with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// ValidationFail sends a 400 with a message and field-level errors.
func ValidationFail(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// BadRequest sends a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Fail(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, message)
}

// Internal sends a 500 with a generic message.
func Internal(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, "Internal Server Error")
}
