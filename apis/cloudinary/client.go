// Package cloudinary uploads and destroys shop logos with signed Cloudinary API calls.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	*http.Client // [Embedded]
	Conf         *Conf
	Now          func() time.Time
}

func NewClient(httpClient *http.Client, conf *Conf) *Client {
	if conf.BaseURL == "" {
		conf.BaseURL = DefaultBaseURL
	}
	if conf.Folder == "" {
		conf.Folder = DefaultFolder
	}
	return &Client{Client: httpClient, Conf: conf, Now: time.Now}
}

// Sign returns the hex SHA-1 of the sorted "k=v&..." params followed by the API secret.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL turns ".../upload/v123/shops_logos/abc.png" into "shops_logos/abc".
func PublicIDFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	dir, file := path.Split(u.Path)
	folder := path.Base(path.Clean(dir))
	name := strings.TrimSuffix(file, path.Ext(file))
	if name == "" || folder == "" || folder == "/" || folder == "." {
		return "", false
	}
	return folder + "/" + name, true
}

func (c *Client) signed(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(c.Now().Unix(), 10)
	params["signature"] = Sign(params, c.Conf.APISecret)
	params["api_key"] = c.Conf.APIKey
	return params
}

// Upload stores an image in the configured folder and returns its secure URL.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	params := c.signed(map[string]string{
		"folder":         c.Conf.Folder,
		"format":         "png",
		"transformation": "c_limit,h_1000,w_1000",
	})
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err = fw.Write(data); err != nil {
		return "", err
	}
	if err = mw.Close(); err != nil {
		return "", err
	}
	var res struct {
		SecureURL string `json:"secure_url"`
	}
	if err = c.post(ctx, "upload", mw.FormDataContentType(), &body, &res); err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

// Destroy removes the image behind a delivery URL. URLs that are not Cloudinary paths are ignored.
func (c *Client) Destroy(ctx context.Context, deliveryURL string) error {
	publicID, ok := PublicIDFromURL(deliveryURL)
	if !ok {
		log.Printf("[WARN][CLOUDINARY] cannot derive public id from %q", deliveryURL)
		return nil
	}
	form := url.Values{}
	for k, v := range c.signed(map[string]string{"public_id": publicID}) {
		form.Set(k, v)
	}
	var res struct {
		Result string `json:"result"`
	}
	if err := c.post(ctx, "destroy", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &res); err != nil {
		return err
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary: destroy %s: %s", publicID, res.Result)
	}
	return nil
}

func (c *Client) post(ctx context.Context, action, contentType string, body io.Reader, out any) error {
	endpoint := fmt.Sprintf("%s/%s/image/%s", c.Conf.BaseURL, c.Conf.CloudName, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	res, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Printf("[WARN][CLOUDINARY] %v", closeErr)
		}
	}()
	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	if res.StatusCode/100 != 2 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &apiErr)
		return fmt.Errorf("cloudinary: %s: %d %s", action, res.StatusCode, apiErr.Error.Message)
	}
	return json.Unmarshal(data, out)
}
