// Package cli implements bizctl, an interactive terminal client that drives
// one record table at a time against the business backends.
//
// Commands:
//
//	login <email>              authenticate (password is read without echo)
//	collections                list the collections that can be opened
//	open <collection>          mount a table and load it
//	load                       reload the open table
//	search [term]              filter rows; an empty term clears the filter
//	sort <field>               sort by field, toggling asc/desc on repeat
//	show                       print the displayed rows
//	edit <id> field=value ...  update fields of one record
//	add field=value ...        create a record
//	rm <id>                    delete a record
//	help, exit
package cli
