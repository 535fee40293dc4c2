package model

type UserModel struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey"`
	Username string `gorm:"column:username;type:varchar(50);not null"`
}

func (UserModel) TableName() string {
	return "users"
}

type VideoModel struct {
	ID    string `gorm:"column:id;type:uuid;primaryKey"`
	Title string `gorm:"column:title;type:varchar(255);not null"`
}

func (VideoModel) TableName() string {
	return "videos"
}

type UserRoleModel struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey"`
	Role     string `gorm:"column:role;type:varchar(20)"`
	IsActive bool   `gorm:"column:is_active"`
}

func (UserRoleModel) TableName() string {
	return "users"
}
