package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jyothri/ipodphotos/collect"
	"github.com/jyothri/ipodphotos/db"
	"github.com/jyothri/ipodphotos/photodb"
)

func api(r *mux.Router) {
	api := r.PathPrefix("/api/").Subrouter()
	api.Use(RequestSizeLimitMiddleware(ScanRequestMaxBodySize))
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	api.HandleFunc("/scans", DoScansHandler).Methods("POST")
	api.HandleFunc("/scans/{scan_id:[0-9]+}", DeleteScanHandler).Methods("DELETE")
	api.HandleFunc("/scans", ListScansHandler).Methods("GET").Queries("page", "{page}")
	api.HandleFunc("/scans", ListScansHandler).Methods("GET")
	api.HandleFunc("/accounts", GetRequestAccountsHandler).Methods("GET")
	api.HandleFunc("/photodb/{scan_id:[0-9]+}/albums", ListPhotoDbAlbumsHandler).Methods("GET")
	api.HandleFunc("/photodb/{scan_id:[0-9]+}", ListPhotoDbImagesHandler).Methods("GET").Queries("page", "{page}")
	api.HandleFunc("/photodb/{scan_id:[0-9]+}", ListPhotoDbImagesHandler).Methods("GET")
	api.HandleFunc("/mhod/{code}", MhodTypeHandler).Methods("GET")
}

func DoScansHandler(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	var doScanRequest DoScanRequest
	err := decoder.Decode(&doScanRequest)
	if handleMaxBytesError(w, r, err, ScanRequestMaxBodySize) {
		return
	}
	if err != nil {
		slog.Error("Failed to decode scan request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	slog.Info("Received scan request", "scan_type", doScanRequest.ScanType)

	var scanId int
	switch doScanRequest.ScanType {
	case "Local":
		scanId, err = collect.LocalPhotoDb(doScanRequest.LocalScan)
	case "GDrive":
		scanId, err = collect.DrivePhotoDb(doScanRequest.GDriveScan)
	case "GStorage":
		scanId, err = collect.CloudStoragePhotoDb(doScanRequest.GStorageScan)
	default:
		slog.Error("Unknown scan type", "scan_type", doScanRequest.ScanType)
		http.Error(w, fmt.Sprintf("Unknown scan type: %s", doScanRequest.ScanType), http.StatusBadRequest)
		return
	}

	if err != nil {
		slog.Error("Failed to start scan",
			"scan_type", doScanRequest.ScanType,
			"error", err)
		http.Error(w, fmt.Sprintf("Failed to start scan: %v", err), http.StatusInternalServerError)
		return
	}

	body := DoScanResponse{ScanId: scanId}
	writeJSONResponse(w, body, http.StatusOK)
}

func ListScansHandler(w http.ResponseWriter, r *http.Request) {
	pageNo := getPageNumber(mux.Vars(r))
	scans, totResults, err := db.GetScansFromDb(pageNo)
	if err != nil {
		slog.Error("Failed to get scans from database",
			"page", pageNo,
			"error", err)
		http.Error(w, "Failed to retrieve scans", http.StatusInternalServerError)
		return
	}

	pageInfo := PaginationInfo{Page: pageNo, Size: totResults}
	body := ScansResponse{
		PageInfo: pageInfo,
		Scans:    scans,
	}
	writeJSONResponse(w, body, http.StatusOK)
}

func GetRequestAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := db.GetRequestAccountsFromDb()
	if err != nil {
		slog.Error("Failed to get request accounts from database", "error", err)
		http.Error(w, "Failed to retrieve accounts", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, accounts, http.StatusOK)
}

func DeleteScanHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scanId, ok := getIntFromMap(vars, "scan_id")
	if !ok {
		http.Error(w, "Invalid scan ID", http.StatusBadRequest)
		return
	}

	if err := db.DeleteScan(scanId); err != nil {
		slog.Error("Failed to delete scan", "error", err, "scan_id", scanId)
		http.Error(w, "Failed to delete scan", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func ListPhotoDbImagesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	pageNo := getPageNumber(vars)
	scanId, ok := getIntFromMap(vars, "scan_id")
	if !ok {
		http.Error(w, "Invalid scan ID", http.StatusBadRequest)
		return
	}

	images, totResults, err := db.GetPhotoDbImagesFromDb(scanId, pageNo)
	if err != nil {
		slog.Error("Failed to get photo database images from database",
			"scan_id", scanId,
			"page", pageNo,
			"error", err)
		http.Error(w, "Failed to retrieve images", http.StatusInternalServerError)
		return
	}

	pageInfo := PaginationInfo{Page: pageNo, Size: totResults}
	body := PhotoDbImagesResponse{
		PageInfo: pageInfo,
		Images:   images,
	}
	writeJSONResponse(w, body, http.StatusOK)
}

func ListPhotoDbAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	scanId, ok := getIntFromMap(mux.Vars(r), "scan_id")
	if !ok {
		http.Error(w, "Invalid scan ID", http.StatusBadRequest)
		return
	}

	albums, err := db.GetPhotoDbAlbumsFromDb(scanId)
	if err != nil {
		slog.Error("Failed to get photo database albums from database",
			"scan_id", scanId,
			"error", err)
		http.Error(w, "Failed to retrieve albums", http.StatusInternalServerError)
		return
	}

	pageInfo := PaginationInfo{Page: 1, Size: len(albums)}
	body := PhotoDbAlbumsResponse{
		PageInfo: pageInfo,
		Albums:   albums,
	}
	writeJSONResponse(w, body, http.StatusOK)
}

func MhodTypeHandler(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseUint(mux.Vars(r)["code"], 10, 16)
	if err != nil {
		http.Error(w, "Invalid metadata object type code", http.StatusBadRequest)
		return
	}
	t := photodb.MhodType(code)
	body := MhodTypeResponse{Code: uint16(code), Label: t.String(), Known: t.Known()}
	writeJSONResponse(w, body, http.StatusOK)
}

func getIntFromMap(vars map[string]string, field string) (int, bool) {
	field, present := vars[field]
	if !present {
		return 0, false
	}
	fieldInt, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return fieldInt, true
}

func getPageNumber(vars map[string]string) int {
	page, present := getIntFromMap(vars, "page")
	if !present || page < 1 {
		return 1
	}
	return page
}

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	serializedBody, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal JSON", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(statusCode)

	if _, err := w.Write(serializedBody); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

type PaginationInfo struct {
	Size int `json:"size"`
	Page int `json:"page"`
}

type ScansResponse struct {
	PageInfo PaginationInfo `json:"pagination_info"`
	Scans    []db.Scan      `json:"scans"`
}

type DoScanRequest struct {
	ScanType     string
	LocalScan    collect.LocalPhotoDbScan
	GDriveScan   collect.DrivePhotoDbScan
	GStorageScan collect.GStoragePhotoDbScan
}

type DoScanResponse struct {
	ScanId int `json:"scan_id"`
}

type PhotoDbImagesResponse struct {
	PageInfo PaginationInfo        `json:"pagination_info"`
	Images   []db.PhotoDbImageRead `json:"images"`
}

type PhotoDbAlbumsResponse struct {
	PageInfo PaginationInfo        `json:"pagination_info"`
	Albums   []db.PhotoDbAlbumRead `json:"albums"`
}

type MhodTypeResponse struct {
	Code  uint16 `json:"code"`
	Label string `json:"label"`
	Known bool   `json:"known"`
}
