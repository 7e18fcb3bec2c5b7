package zcsvapp

import (
	appbase "github.com/warptools/zcsv/app/base"
	_ "github.com/warptools/zcsv/app/mirror"
	_ "github.com/warptools/zcsv/app/tables"
)

var App = appbase.App
