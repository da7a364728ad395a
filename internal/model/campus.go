// Package model 定义了与数据表对应的 Go 结构体。
package model

import "time"

// Base 是所有数据表共有的字段：自增主键与时间戳。
type Base struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetID 返回记录的主键。
func (b Base) GetID() int64 {
	return b.ID
}

// Schedule 对应 schedules 表，一条记录是一节课。
type Schedule struct {
	Base
	Subject    string `gorm:"type:varchar(150);not null" json:"subject"`
	CourseCode string `gorm:"type:varchar(30)" json:"course_code"`
	Day        string `gorm:"type:varchar(10);not null;index" json:"day"`
	StartTime  string `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime    string `gorm:"type:varchar(5);not null" json:"end_time"`
	RoomNumber string `gorm:"type:varchar(30)" json:"room_number"`
	Instructor string `gorm:"type:varchar(100)" json:"instructor"`
	Department string `gorm:"type:varchar(100);index" json:"department"`
	Semester   int    `json:"semester"`
	IsActive   bool   `gorm:"not null" json:"is_active"`
}

func (Schedule) TableName() string {
	return TableSchedules
}

// MenuItem 对应 menus 表，一条记录是某天某一餐的一道菜。
type MenuItem struct {
	Base
	Name         string  `gorm:"type:varchar(150);not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        float64 `gorm:"not null" json:"price"`
	MealType     string  `gorm:"type:varchar(20);not null;index" json:"meal_type"`
	Date         string  `gorm:"type:varchar(10);not null;index" json:"date"`
	IsVegetarian bool    `gorm:"not null" json:"is_vegetarian"`
	IsAvailable  bool    `gorm:"not null" json:"is_available"`
}

func (MenuItem) TableName() string {
	return TableMenus
}

// BusRoute 对应 buses 表。
type BusRoute struct {
	Base
	RouteName     string   `gorm:"type:varchar(150);not null" json:"route_name"`
	RouteNumber   string   `gorm:"type:varchar(30);not null" json:"route_number"`
	DepartureTime string   `gorm:"type:varchar(5);not null" json:"departure_time"`
	ArrivalTime   string   `gorm:"type:varchar(5)" json:"arrival_time"`
	Stops         []string `gorm:"type:text;serializer:json" json:"stops"`
	DriverName    string   `gorm:"type:varchar(100)" json:"driver_name"`
	DriverContact string   `gorm:"type:varchar(30)" json:"driver_contact"`
	IsActive      bool     `gorm:"not null" json:"is_active"`
}

func (BusRoute) TableName() string {
	return TableBuses
}

// Event 对应 events 表。
type Event struct {
	Base
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Date        string `gorm:"type:varchar(10);not null;index" json:"date"`
	Time        string `gorm:"type:varchar(5)" json:"time"`
	Location    string `gorm:"type:varchar(150)" json:"location"`
	Organizer   string `gorm:"type:varchar(150)" json:"organizer"`
	Category    string `gorm:"type:varchar(50);index" json:"category"`
	Attachment  string `gorm:"type:varchar(255)" json:"attachment"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}

func (Event) TableName() string {
	return TableEvents
}

// Update 对应 updates 表，即校园公告。
type Update struct {
	Base
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	Category    string `gorm:"type:varchar(50);index" json:"category"`
	Priority    string `gorm:"type:varchar(10);not null" json:"priority"`
	Attachment  string `gorm:"type:varchar(255)" json:"attachment"`
	IsPublished bool   `gorm:"not null" json:"is_published"`
}

func (Update) TableName() string {
	return TableUpdates
}

// FAQ 对应 faqs 表。
type FAQ struct {
	Base
	Question string `gorm:"type:text;not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
	Category string `gorm:"type:varchar(50);index" json:"category"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

func (FAQ) TableName() string {
	return TableFAQs
}
