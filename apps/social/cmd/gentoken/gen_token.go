package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"CrewServer/apps/social/internal/utils"
)

// 本地调试用小工具：给某个平台账号签发 JWT，
// 顺便可以为内部接口的管理密钥生成 bcrypt 哈希。
func main() {
	uid := flag.String("uid", "", "平台账号，如 tg:123456 / app:42 / mail:a@b.c")
	secret := flag.String("secret", os.Getenv("CREW_GATEWAY_JWTSECRET"), "JWT 签名密钥")
	ttl := flag.Duration("ttl", 0, "Token 有效期，0 表示默认 30 天")
	adminKey := flag.String("admin-key", "", "可选：为管理密钥生成 bcrypt 哈希")
	flag.Parse()

	if *adminKey != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*adminKey), bcrypt.DefaultCost)
		if err != nil {
			fmt.Printf("生成哈希失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("管理密钥哈希: %s\n", string(hashed))
	}

	if *uid == "" {
		if *adminKey == "" {
			flag.Usage()
			os.Exit(1)
		}
		return
	}
	if *secret == "" {
		fmt.Println("缺少 JWT 签名密钥（-secret 或 CREW_GATEWAY_JWTSECRET）")
		os.Exit(1)
	}

	utils.InitJWT(*secret)
	token, err := utils.GenerateToken(*uid, *ttl)
	if err != nil {
		fmt.Printf("签发失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("平台账号: %s\n", *uid)
	fmt.Printf("Token: %s\n", token)
	if *ttl == 0 {
		fmt.Printf("有效期: 默认 30 天\n")
	} else {
		fmt.Printf("有效期: %s\n", (*ttl).Round(time.Second))
	}
}
