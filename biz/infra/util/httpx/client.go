package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/json"
)

// httpx/client 是一个简单的http客户端
// 用于升级通知等对外webhook调用

var (
	client *HttpClient
	once   sync.Once
)

const (
	GET  = "GET"
	POST = "POST"
)

// HttpClient 是一个简单的 HTTP 客户端
type HttpClient struct {
	Client *http.Client
}

// NewHttpClient 单例模式维护一个client
func NewHttpClient() *HttpClient {
	once.Do(func() {
		client = &HttpClient{
			Client: http.DefaultClient,
		}
	})
	return client
}

func GetHttpClient() *HttpClient {
	return NewHttpClient()
}

// do 发送请求
func (c *HttpClient) do(ctx context.Context, method, url string, headers http.Header, body any) (resp *http.Response, err error) {
	// 序列化 body 为 JSON
	var bodyBytes []byte
	var req *http.Request
	if bodyBytes, err = json.Marshal(body); err != nil {
		return nil, fmt.Errorf("[httpx]请求体序列化失败: %w", err)
	}
	// 创建新的请求
	if req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(bodyBytes)); err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	// 设置请求头
	for k, vv := range headers {
		req.Header[k] = vv
	}
	// 发送请求
	return c.Client.Do(req)
}

func checkStatusCode(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_resp, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, response body: %s", resp.StatusCode, _resp)
	}
	return nil
}

func (c *HttpClient) getResp(ctx context.Context, method, url string, headers http.Header, body any) (header http.Header, _ []byte, err error) {
	var resp *http.Response
	if resp, err = c.do(ctx, method, url, headers, body); err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err = checkStatusCode(resp); err != nil {
		return resp.Header, nil, err
	}
	var data []byte
	if data, err = io.ReadAll(resp.Body); err != nil {
		return resp.Header, nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return resp.Header, data, nil
}

// Post 发送POST请求并将响应反序列化为T
func Post[T any](ctx context.Context, url string, headers http.Header, body any) (resp T, err error) {
	var data []byte
	if _, data, err = GetHttpClient().getResp(ctx, POST, url, headers, body); err != nil {
		return resp, err
	}
	if err = json.Unmarshal(data, &resp); err != nil {
		return resp, fmt.Errorf("反序列化响应失败: %w", err)
	}
	return resp, nil
}

// PostOnly 发送POST请求, 只校验状态码, 不解析响应体
// webhook类服务的响应体格式不可预期(如Slack返回纯文本ok)
func PostOnly(ctx context.Context, url string, headers http.Header, body any) (err error) {
	_, _, err = GetHttpClient().getResp(ctx, POST, url, headers, body)
	return err
}
