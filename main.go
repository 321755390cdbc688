package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoshinonyaruko/snaky/api"
	"github.com/hoshinonyaruko/snaky/config"
	"github.com/hoshinonyaruko/snaky/memimg"
	"github.com/hoshinonyaruko/snaky/session"
	"github.com/hoshinonyaruko/snaky/sqlite"
)

func main() {
	// Initialize the configuration
	if _, err := config.LoadConfig("./config.json"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	EnsureFoldersExist(
		config.GetConfigValue("output_dir").(string),
		config.GetConfigValue("skins_dir").(string),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 获取blockSize
	blockSize := config.GetConfigValue("blocksize").(int)
	skinsDir := config.GetConfigValue("skins_dir").(string)
	// 载入皮肤到内存
	skins := memimg.NewSkins(blockSize)
	if err := skins.Load(skinsDir); err != nil {
		log.Printf("Failed to load skins: %v", err)
	}
	// 检测并热更新到内存 加速绘图
	go func() {
		if err := skins.Watch(ctx, skinsDir); err != nil {
			log.Printf("Skin watcher stopped: %v", err)
		}
	}()

	db, err := api.InitDB(config.GetConfigValue("database").(string))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	idle := time.Duration(config.GetConfigValue("idle_timeout_seconds").(int)) * time.Second
	mgr := session.NewManager(ctx, sqlite.Recorder{DB: db}, idle)
	defer mgr.Close()
	go mgr.RunJanitor(ctx, time.Minute)

	router := api.NewRouter(mgr, db, skins)

	// 从配置单例读取端口 监听
	errc := make(chan error, 1)
	go func() {
		errc <- router.Run(":" + config.GetConfigValue("port").(string))
	}()

	select {
	case err := <-errc:
		log.Printf("Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down")
	}
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			err := os.MkdirAll(folder, 0755) // 使用0755权限以确保读写权限
			if err != nil {
				// 如果创建失败，则记录错误并可能退出程序
				log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			log.Printf("Created %s directory", folder)
		}
	}
}
