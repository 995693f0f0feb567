package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	if err != nil {
		t.Fatalf("FromMap() error: %v", err)
	}
	if cfg.APIURL != "https://api.ieum.app" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.KakaoAuthURL != "https://kauth.kakao.com/oauth/authorize" || cfg.KakaoTokenURL != "https://kauth.kakao.com/oauth/token" {
		t.Errorf("kakao urls = %q, %q", cfg.KakaoAuthURL, cfg.KakaoTokenURL)
	}
	if cfg.Provider().Initialized() {
		t.Error("provider initialized without a client id")
	}
	if cfg.LogLevel != "info" || cfg.CallbackPort != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
	dir, err := cfg.Dir()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dir) != ".ieum" {
		t.Errorf("Dir() = %q", dir)
	}
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"IEUM_API_URL":         "http://localhost:4000",
		"IEUM_KAKAO_CLIENT_ID": "rest-key",
		"IEUM_CALLBACK_PORT":   "5173",
		"IEUM_STATE_DIR":       "/tmp/ieum-test",
		"IEUM_REDIS_ADDR":      "127.0.0.1:6379",
	})
	if err != nil {
		t.Fatalf("FromMap() error: %v", err)
	}
	if cfg.APIURL != "http://localhost:4000" || cfg.CallbackPort != 5173 || cfg.RedisAddr != "127.0.0.1:6379" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Provider().Initialized() {
		t.Error("provider should be initialized")
	}
	if dir, _ := cfg.Dir(); dir != "/tmp/ieum-test" {
		t.Errorf("Dir() = %q", dir)
	}
}

func TestFromMapRejectsBadPort(t *testing.T) {
	for _, port := range []string{"70000", "-1", "http"} {
		_, err := FromMap(map[string]string{"IEUM_CALLBACK_PORT": port})
		if err == nil || !strings.Contains(err.Error(), "parse env") {
			t.Errorf("port %q: err = %v", port, err)
		}
	}
}
