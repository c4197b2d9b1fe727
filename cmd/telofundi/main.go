package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/app"
)

func main() {
	// .env はローカル開発用。存在しない場合（本番環境など）は環境変数をそのまま使う。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
