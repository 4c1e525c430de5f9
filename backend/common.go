package backend

import (
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})
