package models

type APIServiceInfo struct {
	Version   string
	BuildSHA  string
	BuildTime string
}

const HttpSourceHeader = "x-ingestion-source"
const HttpRequestIDHeader = "x-request-id"
