package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hierovision/hierovision/client/internal/types"
)

// SaveScan stores a translation result in the user's scan history.
func SaveScan(ctx context.Context, r Requester, req types.SaveScanRequest) (*types.Scan, error) {
	var sr types.ScanResponse
	if err := call(ctx, r, "/scans/save", RequestOptions{Method: http.MethodPost, Body: req}, &sr); err != nil {
		return nil, err
	}
	if sr.Scan == nil {
		return nil, errMissingField("scan")
	}
	return sr.Scan, nil
}

// ListScans retrieves one page of the user's scan history. Non-positive
// page or perPage leave the server defaults in place.
func ListScans(ctx context.Context, r Requester, page, perPage int) (*types.ListScansResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	endpoint := "/scans/user"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var lr types.ListScansResponse
	if err := call(ctx, r, endpoint, RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	return &lr, nil
}

// RecentScans retrieves the latest scans, at most limit of them.
func RecentScans(ctx context.Context, r Requester, limit int) ([]types.Scan, error) {
	endpoint := "/scans/recent"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	var lr types.ListScansResponse
	if err := call(ctx, r, endpoint, RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	if lr.Scans == nil {
		return []types.Scan{}, nil
	}
	return lr.Scans, nil
}

// GetScan retrieves a single scan.
func GetScan(ctx context.Context, r Requester, scanID string) (*types.Scan, error) {
	if err := types.ValidateIDPresent(scanID, "scanId"); err != nil {
		return nil, err
	}
	var sr types.ScanResponse
	if err := call(ctx, r, "/scans/"+url.PathEscape(scanID), RequestOptions{}, &sr); err != nil {
		return nil, err
	}
	if sr.Scan == nil {
		return nil, errMissingField("scan")
	}
	return sr.Scan, nil
}

// DeleteScan removes a scan from the user's history.
func DeleteScan(ctx context.Context, r Requester, scanID string) error {
	if err := types.ValidateIDPresent(scanID, "scanId"); err != nil {
		return err
	}
	return call(ctx, r, "/scans/"+url.PathEscape(scanID), RequestOptions{Method: http.MethodDelete}, nil)
}
