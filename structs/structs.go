package structs

import "fmt"

// Position 描述棋盘上的一个坐标位置。
type Position struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// Direction 移动方向（"up", "down", "left", "right"）
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Opposite returns the reverse direction, or "" for an invalid one.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return ""
}

// Delta returns the one-cell offset for d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// ParseDirection 校验并转换方向字符串
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction '%s' provided", s)
	}
	return d, nil
}

// Status 游戏状态
type Status string

const (
	StatusRunning Status = "running"
	StatusOver    Status = "over"
	StatusWon     Status = "won" // 蛇占满整个棋盘
)

// Terminal reports whether no further ticks apply.
func (s Status) Terminal() bool {
	return s == StatusOver || s == StatusWon
}

// GameState 描述一局游戏的完整状态。每个tick产生一个新的值。
type GameState struct {
	Snake          []Position `json:"snake"`            // 蛇头在前，蛇尾在后
	Food           Position   `json:"food"`             // 食物位置
	Direction      Direction  `json:"direction"`        // 下一个tick使用的方向
	Heading        Direction  `json:"heading"`          // 上一个tick实际移动的方向
	Score          int        `json:"score"`            // 分数
	TickIntervalMs int        `json:"tick_interval_ms"` // 移动间隔，单位毫秒
	Status         Status     `json:"status"`
}

// Head returns the first snake segment.
func (s GameState) Head() Position {
	return s.Snake[0]
}

// Clone returns a copy that shares no memory with s.
func (s GameState) Clone() GameState {
	c := s
	c.Snake = make([]Position, len(s.Snake))
	copy(c.Snake, s.Snake)
	return c
}

// CellKind 棋盘格子的分类
type CellKind string

const (
	CellEmpty CellKind = "empty"
	CellBody  CellKind = "snake"
	CellHead  CellKind = "head"
	CellFood  CellKind = "food"
)

// Snapshot 发送给渲染端的快照
type Snapshot struct {
	SessionID      string       `json:"session_id"`
	State          GameState    `json:"state"`
	StepsPerSecond float64      `json:"steps_per_second"`
	BoardSize      int          `json:"board_size"`
	Cells          [][]CellKind `json:"cells,omitempty"` // cells[y][x]
}

// GameResult 一局结束后写入数据库的记录
type GameResult struct {
	SessionID      string `json:"session_id"`
	Score          int    `json:"score"`
	Length         int    `json:"length"`
	Status         Status `json:"status"`
	TickIntervalMs int    `json:"tick_interval_ms"`
	StartedAt      int64  `json:"started_at"` // 时间戳
	EndedAt        int64  `json:"ended_at"`   // 时间戳
}
