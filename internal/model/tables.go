package model

// 数据表名
const (
	TableUsers     = "users"
	TableSchedules = "schedules"
	TableMenus     = "menus"
	TableBuses     = "buses"
	TableEvents    = "events"
	TableUpdates   = "updates"
	TableFAQs      = "faqs"
)

// TableInfo 描述一张表的软删除/可用性标记列。
type TableInfo struct {
	Name      string
	FlagField string
}

// Tables 是所有已知数据表的登记表。
var Tables = map[string]TableInfo{
	TableUsers:     {Name: TableUsers, FlagField: "is_active"},
	TableSchedules: {Name: TableSchedules, FlagField: "is_active"},
	TableMenus:     {Name: TableMenus, FlagField: "is_available"},
	TableBuses:     {Name: TableBuses, FlagField: "is_active"},
	TableEvents:    {Name: TableEvents, FlagField: "is_active"},
	TableUpdates:   {Name: TableUpdates, FlagField: "is_published"},
	TableFAQs:      {Name: TableFAQs, FlagField: "is_active"},
}

// LookupTable 返回表的登记信息。
func LookupTable(name string) (TableInfo, bool) {
	info, ok := Tables[name]
	return info, ok
}
