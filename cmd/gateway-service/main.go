package main

import (
	"github.com/redone-net/marketplace/internal/gateway/app"
	"github.com/redone-net/marketplace/internal/gateway/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
