package transit

type Stop struct {
	PrimaryIdentifier string `groups:"basic"`

	PrimaryName string `groups:"basic"`

	Location *Location `groups:"basic"`

	// IsDestination marks stops eligible for arrival detection
	IsDestination bool `groups:"basic"`

	CreationDateTime     string `groups:"detailed"`
	ModificationDateTime string `groups:"detailed"`

	DataSource *DataSource `groups:"internal"`
}
