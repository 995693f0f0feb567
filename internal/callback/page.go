package callback

import (
	"fmt"
	"net/http"
)

const (
	pageDone = "로그인 정보를 받았습니다 · return to your terminal"
	pageIdle = "ieum is waiting for a login"
)

func writePage(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, pageHTML, msg) //nolint:errcheck
}

const pageHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>ieum</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{
  background:#fffaf2;color:#2b2b2b;
  font-family:'Pretendard','Apple SD Gothic Neo','Noto Sans KR',sans-serif;
  height:100vh;display:flex;align-items:center;justify-content:center;
}
.card{text-align:center}
.logo{font-size:40px;font-weight:700;letter-spacing:8px;color:#f08c00;margin-bottom:24px}
.check{
  width:56px;height:56px;margin:0 auto 20px;
  border:3px solid #2f9e44;border-radius:50%%;
  display:flex;align-items:center;justify-content:center;
  animation:pop .4s cubic-bezier(.175,.885,.32,1.275) forwards;opacity:0;
}
@keyframes pop{0%%{opacity:0;transform:scale(0)}100%%{opacity:1;transform:scale(1)}}
.check svg{width:28px;height:28px}
.msg{font-size:20px;font-weight:600}
</style>
</head>
<body>
<div class="card">
  <div class="logo">이음</div>
  <div class="check">
    <svg viewBox="0 0 24 24" fill="none" stroke="#2f9e44" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round">
      <polyline points="20 6 9 17 4 12"/>
    </svg>
  </div>
  <div class="msg">%s</div>
</div>
</body>
</html>`
