package enum

// MajorGroup is the coarse item-category grouping used for payout and P/L rules
type MajorGroup string

const (
	GroupDrink     MajorGroup = "drink"
	GroupChampagne MajorGroup = "champagne"
	GroupFood      MajorGroup = "food"
	GroupOther     MajorGroup = "other"
	GroupSet       MajorGroup = "set"
	GroupExtension MajorGroup = "extension"
	GroupOtherFee  MajorGroup = "other_fee"
)

// Valid reports whether the group is a known value
func (g MajorGroup) Valid() bool {
	switch g {
	case GroupDrink, GroupChampagne, GroupFood, GroupOther, GroupSet, GroupExtension, GroupOtherFee:
		return true
	}
	return false
}

func (g MajorGroup) String() string {
	return string(g)
}
