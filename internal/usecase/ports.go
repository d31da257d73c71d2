package usecase

import "time"

// テストで差し替えられるようにmainから注入する部品。

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}
