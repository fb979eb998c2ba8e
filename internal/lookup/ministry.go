// Package lookup holds the static reference tables the pipeline consults:
// the ministry master, ministry spelling variations, and the map from source
// filename tokens to review years.
package lookup

// Ministry is one row of the ministry master table.
type Ministry struct {
	ID   int
	Name string
}

// Ministries is the ministry master, in id order.
var Ministries = []Ministry{
	{1, "内閣官房"},
	{2, "内閣府"},
	{3, "宮内庁"},
	{4, "公正取引委員会"},
	{5, "警察庁"},
	{6, "個人情報保護委員会"},
	{7, "カジノ管理委員会"},
	{8, "金融庁"},
	{9, "消費者庁"},
	{10, "こども家庭庁"},
	{11, "デジタル庁"},
	{12, "復興庁"},
	{13, "総務省"},
	{14, "法務省"},
	{15, "外務省"},
	{16, "財務省"},
	{17, "文部科学省"},
	{18, "厚生労働省"},
	{19, "農林水産省"},
	{20, "経済産業省"},
	{21, "国土交通省"},
	{22, "環境省"},
	{23, "原子力規制委員会"},
	{99, "防衛省"},
}

// ministryVariations maps spellings found in older sheets to the master name.
var ministryVariations = map[string]string{
	"原子力規制員会":     "原子力規制委員会",
	"特定個人情報保護委員会": "個人情報保護委員会",
}

var ministryIDs = func() map[string]int {
	m := make(map[string]int, len(Ministries))
	for _, ministry := range Ministries {
		m[ministry.Name] = ministry.ID
	}
	return m
}()

// CanonicalMinistryName folds a known spelling variation onto the master name.
func CanonicalMinistryName(name string) string {
	if canonical, ok := ministryVariations[name]; ok {
		return canonical
	}
	return name
}

// MinistryID resolves a ministry name, after variation folding, to its
// master id.
func MinistryID(name string) (int, bool) {
	id, ok := ministryIDs[CanonicalMinistryName(name)]
	return id, ok
}
