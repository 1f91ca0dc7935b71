package server

import "net/http"

func genericHeaders(w http.ResponseWriter, isJson bool) {
	if isJson {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		w.Header().Set("Content-Type", "application/jsonl+json; charset=UTF-8")
	}
	w.Header().Set("Age", "0")
}

func publicHeaders(w http.ResponseWriter, isJson bool, cacheTime string) {
	w.Header().Set("Cache-Control", "public, max-age="+cacheTime)
	genericHeaders(w, isJson)
}
