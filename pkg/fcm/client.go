package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"KnocksterSafety/config"
)

// FCM HTTP v1 推送客户端
// 通过 service account 换取 OAuth2 token，直接调用 messages:send

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

var (
	client *Client
	once   sync.Once
	err    error
)

type Client struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
}

type message struct {
	Token        string            `json:"token,omitempty"`
	Topic        string            `json:"topic,omitempty"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendRequest struct {
	Message message `json:"message"`
}

func Init() error {
	once.Do(func() {
		cfg := config.Cfg
		client, err = NewClient(cfg.FCMCredentialsPath, cfg.FCMProjectID, cfg.FCMEndpoint)
	})
	return err
}

// GetClient 获取全局客户端实例，Init 失败或未调用时返回 nil
// 推送不是启动的前置条件，调用方据 nil 降级为纯失败投递
func GetClient() *Client {
	return client
}

// NewClient 根据 service account 凭证文件构建客户端
func NewClient(credentialsPath, projectID, endpoint string) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read FCM credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FCM credentials: %w", err)
	}

	ts := conf.TokenSource(context.Background())
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 5 * time.Second // 推送是 best-effort，不允许拖垮分钟级任务

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		projectID:  projectID,
	}, nil
}

// SendToDevice 向单个设备 token 推送
func (c *Client) SendToDevice(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	return c.send(ctx, message{
		Token:        deviceToken,
		Notification: notification{Title: title, Body: body},
		Data:         data,
	})
}

// SendToTopic 向主题推送（如组织管理员主题）
func (c *Client) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	return c.send(ctx, message{
		Topic:        topic,
		Notification: notification{Title: title, Body: body},
		Data:         data,
	})
}

func (c *Client) send(ctx context.Context, msg message) error {
	payload, err := json.Marshal(sendRequest{Message: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal FCM message: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.endpoint, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build FCM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("FCM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("FCM responded with %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
