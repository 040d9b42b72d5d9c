package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ── ICS 订阅拉取 ────────────────────────────────────────────
//
// 职责：按用户提供的 URL 拉取日历内容。
//
// 设计决策：
//   - 仅允许 http/https/webcal，webcal 按 https 访问
//   - 每次拨号都校验解析后的 IP（重定向、DNS 重绑定同样覆盖），
//     拒绝回环、私有、链路本地等内网地址
//   - 不走环境代理，避免绕过地址校验
//   - 响应体上限 icsMaxFileSize
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout  = 30 * time.Second
	icsMaxRedirects  = 5
	icsDialTimeout   = 10 * time.Second
	icsHeaderTimeout = 15 * time.Second
)

var (
	ErrICSURLInvalid   = errors.New("ICS URL 无效")
	ErrICSURLForbidden = errors.New("ICS URL 指向受限地址")
	ErrICSFetchFailed  = errors.New("ICS URL 获取失败")
)

// 运营商级 NAT 地址段，netip 未归入私有地址
var cgnatPrefix = netip.MustParsePrefix("100.64.0.0/10")

// ICSFetcher 拉取远程日历
type ICSFetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// HTTPICSFetcher 基于 net/http 的日历拉取器
type HTTPICSFetcher struct {
	client *http.Client
}

// NewHTTPICSFetcher 创建带内网地址防护的拉取器
func NewHTTPICSFetcher() *HTTPICSFetcher {
	dialer := &net.Dialer{
		Timeout: icsDialTimeout,
		Control: guardDial,
	}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   icsDialTimeout,
		ResponseHeaderTimeout: icsHeaderTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &HTTPICSFetcher{
		client: &http.Client{
			Timeout:       icsFetchTimeout,
			Transport:     transport,
			CheckRedirect: checkRedirect,
		},
	}
}

// Fetch 拉取 URL 内容，调用方负责关闭
func (f *HTTPICSFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	target, err := normalizeICSURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSURLInvalid, err)
	}
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrICSURLForbidden) {
			return nil, ErrICSURLForbidden
		}
		return nil, fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrICSFetchFailed, resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// normalizeICSURL 校验协议与主机，webcal:// → https://
func normalizeICSURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSURLInvalid, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "webcal":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", ErrICSURLInvalid
	}
	if u.Hostname() == "" || u.User != nil {
		return "", ErrICSURLInvalid
	}
	return u.String(), nil
}

// checkRedirect 限制重定向次数与协议；目标地址由 guardDial 再次校验
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= icsMaxRedirects {
		return fmt.Errorf("%w: 重定向次数过多", ErrICSFetchFailed)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return ErrICSURLForbidden
	}
	return nil
}

// guardDial 在连接建立前校验实际拨号的 IP
func guardDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return ErrICSURLForbidden
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !isPublicAddr(addr) {
		return ErrICSURLForbidden
	}
	return nil
}

// isPublicAddr 是否为可公开访问的单播地址
func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		cgnatPrefix.Contains(addr):
		return false
	}
	return true
}
