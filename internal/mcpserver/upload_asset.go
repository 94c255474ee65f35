package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	maxAssetSize   = 10 << 20 // 10 MB
	attachmentsDir = "attachments"
)

var (
	allowedExtensions = map[string]bool{
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".gif":  true,
		".webp": true,
		".svg":  true,
		".pdf":  true,
	}

	mimeToExt = map[string]string{
		"image/png":       ".png",
		"image/jpeg":      ".jpg",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"image/svg+xml":   ".svg",
		"application/pdf": ".pdf",
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

	metadataIP = net.ParseIP("169.254.169.254")
)

// asset is fetched source content plus the extension hinted by its MIME
// type, empty when the source declared none.
type asset struct {
	data []byte
	ext  string
}

type uploadResult struct {
	Status        string `json:"status"`
	SavedPath     string `json:"saved_path"`
	MarkdownImage string `json:"markdown_image"`
}

func (s *Server) uploadAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := ""
	if v, fErr := req.RequireString("filename"); fErr == nil {
		filename = v
	}

	var a asset
	if strings.HasPrefix(source, "data:") {
		a, err = decodeDataSource(source)
	} else {
		a, err = downloadAsset(ctx, source)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(a.data) > maxAssetSize {
		return mcp.NewToolResultError(fmt.Sprintf("asset too large: %d bytes (limit %d)", len(a.data), maxAssetSize)), nil
	}

	if filename == "" {
		filename = deriveFilename(source, a.ext)
	}
	filename = cleanFilename(filename)

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension %s; allowed: png, jpg, jpeg, gif, webp, svg, pdf", ext)), nil
	}
	if err := verifyContentType(a.data, ext); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	savePath := filepath.Join(attachmentsDir, filename)
	if exists, _ := s.store.Exists(savePath); exists {
		return mcp.NewToolResultError(fmt.Sprintf("attachment already exists: %s", savePath)), nil
	}
	if err := s.store.Write(savePath, a.data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save attachment: %v", err)), nil
	}

	urlPath := "/attachments/" + filename
	out, _ := json.Marshal(uploadResult{
		Status:        "success",
		SavedPath:     urlPath,
		MarkdownImage: fmt.Sprintf("![%s](%s)", filename, urlPath),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataSource decodes a data:[<mediatype>][;base64],<data> URI. Only
// base64 payloads with a MIME type from mimeToExt are accepted.
func decodeDataSource(uri string) (asset, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return asset{}, fmt.Errorf("malformed data URI: no comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return asset{}, fmt.Errorf("data URI must be base64-encoded")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return asset{}, fmt.Errorf("decode base64 payload: %w", err)
		}
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	ext, ok := mimeToExt[mime]
	if !ok {
		return asset{}, fmt.Errorf("data URI has unsupported MIME type %s", mime)
	}
	return asset{data: data, ext: ext}, nil
}

// downloadAsset fetches an http(s) source. Loopback and cloud metadata
// hosts are refused, on the first request and again on every redirect hop.
func downloadAsset(ctx context.Context, rawURL string) (asset, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return asset{}, fmt.Errorf("parse source URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return asset{}, fmt.Errorf("scheme %s not allowed, use http or https", u.Scheme)
	}
	if err := blockPrivateHost(u.Hostname()); err != nil {
		return asset{}, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return blockPrivateHost(req.URL.Hostname())
		},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return asset{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return asset{}, fmt.Errorf("fetch source: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return asset{}, fmt.Errorf("source returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return asset{}, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxAssetSize {
		return asset{}, fmt.Errorf("asset too large: response exceeds %d bytes", maxAssetSize)
	}

	ct := strings.Split(resp.Header.Get("Content-Type"), ";")[0]
	return asset{data: data, ext: mimeToExt[ct]}, nil
}

// blockPrivateHost rejects hosts that would let a note tool probe the local
// machine or a cloud metadata service.
func blockPrivateHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		addrs, err := net.LookupIP(host)
		if err != nil || len(addrs) == 0 {
			// Unresolvable names fail in the client instead.
			return nil
		}
		ip = addrs[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	if ip.Equal(metadataIP) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// deriveFilename picks a name for sources that did not supply one: the URL
// path's base name when it looks like a file, a fresh UUID otherwise.
func deriveFilename(source, extHint string) string {
	if !strings.HasPrefix(source, "data:") {
		if u, err := url.Parse(source); err == nil {
			base := path.Base(u.Path)
			if base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
				return base
			}
		}
	}
	if extHint == "" {
		extHint = ".bin"
	}
	return uuid.New().String() + extHint
}

// cleanFilename reduces name to a single safe path component.
func cleanFilename(name string) string {
	name = safeFilenameRe.ReplaceAllString(filepath.Base(name), "_")
	if name == "" || name == "." {
		name = uuid.New().String()
	}
	return name
}

// verifyContentType checks that the sniffed content type agrees with the
// file extension, so a renamed binary cannot pass as an image. SVG is text
// and sniffs as XML, so it gets a tag check instead.
func verifyContentType(data []byte, ext string) error {
	if ext == ".svg" {
		head := data
		if len(head) > 1024 {
			head = head[:1024]
		}
		if !bytes.Contains(head, []byte("<svg")) {
			return fmt.Errorf("svg content is missing an <svg tag")
		}
		return nil
	}

	want := ext
	if want == ".jpeg" {
		want = ".jpg"
	}
	detected := http.DetectContentType(data)
	if got := mimeToExt[strings.Split(detected, ";")[0]]; got != want {
		return fmt.Errorf("detected content type %s does not match extension %s", detected, ext)
	}
	return nil
}
