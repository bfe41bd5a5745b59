package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// PushPayload 推送给解析端的 JSON 载荷
type PushPayload struct {
	RequestID   string   `json:"requestId"`   // 推送请求关联ID
	SyncID      int64    `json:"syncId"`      // 同步记录ID
	Count       int      `json:"count"`       // 域名数量
	Domains     []string `json:"domains"`     // 域名列表
	GeneratedAt string   `json:"generatedAt"` // 生成时间
}

// pushResponse 解析端推送响应
type pushResponse struct {
	Applied int64 `json:"applied"`
}

// PushClient 负责向解析端下发域名和探测健康状态
type PushClient struct {
	pushClient   *http.Client
	healthClient *http.Client
}

// NewPushClient 创建 PushClient 实例
func NewPushClient(pushTimeout, healthTimeout time.Duration) *PushClient {
	return &PushClient{
		pushClient:   &http.Client{Timeout: pushTimeout},
		healthClient: &http.Client{Timeout: healthTimeout},
	}
}

// Push 向解析端推送域名列表
// 携带 X-Push-Secret 认证头，2xx 响应解析 applied 数量，无法解析时按发送数量计
func (p *PushClient) Push(ctx context.Context, endpoint, secret string, payload *PushPayload) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrap(err, "marshal push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Push-Secret", secret)

	resp, err := p.pushClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "push request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("push rejected with status %d", resp.StatusCode)
	}

	var result pushResponse
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || json.Unmarshal(data, &result) != nil || result.Applied <= 0 {
		return int64(payload.Count), nil
	}
	return result.Applied, nil
}

// IsTimeout 判断推送或探测错误是否为超时
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Health 探测解析端健康接口，返回耗时（毫秒）
func (p *PushClient) Health(ctx context.Context, endpoint string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build health request")
	}

	start := time.Now()
	resp, err := p.healthClient.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return latency, errors.Wrap(err, "health request")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return latency, fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return latency, nil
}
