package main

import (
	"github.com/redone-net/marketplace/internal/catalog/app"
	"github.com/redone-net/marketplace/internal/catalog/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
