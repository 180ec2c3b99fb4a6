package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Automation rules evaluated by the periodic scan
			CREATE TABLE automation_rules (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger_type VARCHAR(50) NOT NULL CHECK (trigger_type IN ('meeting_scheduled', 'deal_stage_changed', 'contact_inactive')),
				trigger_config JSONB NOT NULL DEFAULT '{}',
				action_type VARCHAR(50) NOT NULL,
				action_config JSONB NOT NULL DEFAULT '{}',
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_rules_owner ON automation_rules(owner);
			CREATE INDEX idx_automation_rules_is_active ON automation_rules(is_active);

			-- Event-driven workflows and their append-only execution records
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger_type VARCHAR(50) NOT NULL,
				trigger_conditions JSONB,
				actions JSONB NOT NULL DEFAULT '[]',
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_owner ON workflows(owner);
			CREATE INDEX idx_workflows_trigger_type ON workflows(trigger_type);
			CREATE INDEX idx_workflows_is_active ON workflows(is_active);

			CREATE TABLE workflow_executions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				trigger_data JSONB,
				status VARCHAR(50) NOT NULL CHECK (status IN ('success', 'error')),
				error_message TEXT,
				action_log JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_executions_workflow_id ON workflow_executions(workflow_id);
			CREATE INDEX idx_workflow_executions_created_at ON workflow_executions(created_at);

			-- Follow-up work and user notifications
			CREATE TABLE tasks (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				contact_id UUID,
				deal_id UUID,
				title VARCHAR(500) NOT NULL,
				description TEXT,
				priority VARCHAR(50),
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'completed')),
				due_date TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_tasks_owner ON tasks(owner);
			CREATE INDEX idx_tasks_status ON tasks(status);

			CREATE TABLE notifications (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				title VARCHAR(500) NOT NULL,
				message TEXT,
				type VARCHAR(50),
				link VARCHAR(500),
				read BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_notifications_owner ON notifications(owner);

			-- CRM entities the evaluators read
			CREATE TABLE contacts (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255),
				company VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_contacts_owner ON contacts(owner);
			CREATE INDEX idx_contacts_updated_at ON contacts(updated_at);

			CREATE TABLE deals (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				contact_id UUID,
				name VARCHAR(255) NOT NULL,
				stage VARCHAR(100) NOT NULL,
				value NUMERIC(14, 2),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_deals_owner ON deals(owner);
			CREATE INDEX idx_deals_stage ON deals(stage);
			CREATE INDEX idx_deals_updated_at ON deals(updated_at);

			CREATE TABLE activities (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				contact_id UUID NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
				kind VARCHAR(50),
				note TEXT,
				occurred_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_activities_contact_id ON activities(contact_id);
			CREATE INDEX idx_activities_occurred_at ON activities(occurred_at);

			-- Scheduling: recurring availability, public links, booked meetings
			CREATE TABLE availability_slots (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				day_of_week INT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
				start_time VARCHAR(5) NOT NULL,
				end_time VARCHAR(5) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_availability_slots_owner_day ON availability_slots(owner, day_of_week);

			CREATE TABLE scheduling_links (
				id UUID PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				slug VARCHAR(255) NOT NULL UNIQUE,
				duration_minutes INT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_scheduling_links_owner ON scheduling_links(owner);

			CREATE TABLE scheduled_meetings (
				id UUID PRIMARY KEY,
				scheduling_link_id UUID NOT NULL REFERENCES scheduling_links(id) ON DELETE CASCADE,
				attendee_name VARCHAR(255) NOT NULL,
				attendee_email VARCHAR(255) NOT NULL,
				start_time TIMESTAMP WITH TIME ZONE NOT NULL,
				end_time TIMESTAMP WITH TIME ZONE NOT NULL,
				notes TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				CONSTRAINT scheduled_meetings_link_start_key UNIQUE (scheduling_link_id, start_time)
			);

			CREATE INDEX idx_scheduled_meetings_start_time ON scheduled_meetings(start_time);

			-- Append-only automation execution log; dedup_key is the
			-- idempotency guard's exclusion point
			CREATE TABLE automation_executions (
				id UUID PRIMARY KEY,
				rule_id UUID NOT NULL,
				entity_id UUID NOT NULL,
				dedup_key VARCHAR(64) NOT NULL UNIQUE,
				task_id UUID,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_executions_rule_id ON automation_executions(rule_id);
		`,
	}
}
