package model

import (
	"github.com/lib/pq"
)

// 课表尺寸限制
const (
	MinPeriodsPerDay = 1
	MaxPeriodsPerDay = 20
	MaxDays          = 7
)

// Weekdays 合法的星期名称，顺序即一周顺序
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// IsWeekday 是否为合法星期名称（区分大小写）
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Timetable 课表表 — 对应 timetables
// (room_name, class_name) 唯一；Days 为有序星期列表
type Timetable struct {
	ID            string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoomName      string         `gorm:"type:varchar(100);not null"                     json:"room_name"`
	ClassName     string         `gorm:"type:varchar(100);not null"                     json:"class_name"`
	Days          pq.StringArray `gorm:"type:text[];not null"                           json:"days"`
	PeriodsPerDay int            `gorm:"not null"                                       json:"periods_per_day"`
	CreatedBy     string         `gorm:"type:uuid;not null;index"                       json:"created_by"`
	BaseModel

	// 关联
	Creator *User `gorm:"foreignKey:CreatedBy;references:ID" json:"creator,omitempty"`
}

// TableName 指定表名
func (Timetable) TableName() string { return "timetables" }

// DayIndex 星期在本课表中的位置；不存在返回 -1
func (t *Timetable) DayIndex(day string) int {
	for i, d := range t.Days {
		if d == day {
			return i
		}
	}
	return -1
}

// NewGrid 生成完整的空单元格网格（|Days| × PeriodsPerDay），按星期顺序、节次升序
func (t *Timetable) NewGrid() []Cell {
	cells := make([]Cell, 0, len(t.Days)*t.PeriodsPerDay)
	for _, day := range t.Days {
		for period := 1; period <= t.PeriodsPerDay; period++ {
			cells = append(cells, NewCell(t.ID, day, period))
		}
	}
	return cells
}
