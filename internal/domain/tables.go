package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysUser{},
	&SysSession{},
	// Catalog
	&Category{},
	&Brand{},
	&Item{},
}
