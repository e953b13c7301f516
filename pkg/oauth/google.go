package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teambdspro/BDSPRO-sub001/config"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile 身份提供方返回的用户画像，平台只消费姓名与邮箱
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Provider 第三方身份提供方接口（Service 层依赖此接口，便于测试替换）
type Provider interface {
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// googleProvider 基于 golang.org/x/oauth2 的 Google 实现
type googleProvider struct {
	cfg *oauth2.Config
}

// NewGoogleProvider 创建 Google OAuth 提供方
func NewGoogleProvider(cfg *config.OAuthConfig) Provider {
	return &googleProvider{
		cfg: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Exchange 用授权码换取 token 并拉取用户画像
func (p *googleProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("授权码换取 token 失败: %w", err)
	}

	client := p.cfg.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("获取用户信息失败: 状态码 %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("解析用户信息失败: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("身份提供方未返回邮箱")
	}

	return &profile, nil
}
