package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL 签发令牌的默认有效期
const defaultTokenTTL = 30 * 24 * time.Hour

var jwtSecret []byte

var (
	ErrTokenInvalid = errors.New("token 无效")
	ErrTokenExpired = errors.New("token 已过期")
)

// InitJWT 设置签名密钥，进程启动时调用一次。
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// Claims 网关令牌载荷。
// PlatformUid 是带平台前缀的账号标识（tg:123 / app:42 / mail:a@b.c），
// 规范身份解析在请求链路里做，令牌只携带平台侧身份。
type Claims struct {
	PlatformUid string `json:"platformUid"`
	jwt.RegisteredClaims
}

// GenerateToken 为平台账号签发访问令牌。
// ttl 为 0 时使用默认有效期。
func GenerateToken(platformUid string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	claims := Claims{
		PlatformUid: platformUid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   platformUid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken 解析并校验访问令牌。
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PlatformUid == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
