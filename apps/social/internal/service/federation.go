package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"CrewServer/config"
)

// FederationResult 联邦层对一个平台账号的回答
type FederationResult struct {
	FederationId  string   `json:"federationId"`
	LinkedHandles []string `json:"linkedHandles"`
}

// FederationClient 跨平台身份联邦层
// 查询某平台账号关联了哪些其他平台账号；不可用时身份解析降级为单平台。
type FederationClient interface {
	LookupLinkedHandles(ctx context.Context, platformUid string) (*FederationResult, error)
}

type httpFederationClient struct {
	baseURL string
	client  *http.Client
}

// NewFederationClient 按配置构造联邦层客户端；未配置地址时返回 nil，表示纯本地模式。
func NewFederationClient(cfg config.FederationConfig) FederationClient {
	if cfg.BaseURL == "" {
		return nil
	}
	return &httpFederationClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// LookupLinkedHandles 查询联邦侧的账号关联
// 联邦层没有记录（404）时返回 nil 结果而非错误。
func (c *httpFederationClient) LookupLinkedHandles(ctx context.Context, platformUid string) (*FederationResult, error) {
	reqURL := fmt.Sprintf("%s/v1/links/%s", c.baseURL, url.PathEscape(platformUid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("联邦层返回异常状态: %d", resp.StatusCode)
	}

	var result FederationResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
