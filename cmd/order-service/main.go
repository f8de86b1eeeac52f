package main

import (
	"github.com/redone-net/marketplace/internal/order/app"
	"github.com/redone-net/marketplace/internal/order/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
